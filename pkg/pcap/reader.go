package pcap

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

// Reader reads raw frames from a pcap file.
type Reader struct {
	handle *pcap.Handle
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string) (*Reader, error) {
	handle, err := pcap.OpenOffline(filePath)
	if err != nil {
		return nil, err
	}
	return &Reader{handle: handle}, nil
}

// Close closes the pcap handle.
func (r *Reader) Close() {
	r.handle.Close()
}

// ReadFrames hands every frame in the file to fn, in capture order.
func (r *Reader) ReadFrames(fn func(data []byte)) {
	source := gopacket.NewPacketSource(r.handle, r.handle.LinkType())
	for packet := range source.Packets() {
		fn(packet.Data())
	}
}
