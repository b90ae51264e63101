package pcap

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/require"
)

func writeTestPcap(t *testing.T, frameCount int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))

	for i := 0; i < frameCount; i++ {
		ethLayer := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
			DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ipLayer := &layers.IPv4{
			SrcIP:    net.IPv4(192, 168, 1, byte(i+1)),
			DstIP:    net.IPv4(10, 0, 0, 1),
			Version:  4,
			TTL:      64,
			Protocol: layers.IPProtocolTCP,
		}
		tcpLayer := &layers.TCP{SrcPort: 40000, DstPort: 80, SYN: true, Window: 14600}
		tcpLayer.SetNetworkLayerForChecksum(ipLayer)

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
		require.NoError(t, gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, tcpLayer))

		ci := gopacket.CaptureInfo{
			Timestamp:     time.Now(),
			CaptureLength: len(buf.Bytes()),
			Length:        len(buf.Bytes()),
		}
		require.NoError(t, w.WritePacket(ci, buf.Bytes()))
	}

	return path
}

func TestReadFrames(t *testing.T) {
	path := writeTestPcap(t, 5)

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	var frames int
	reader.ReadFrames(func(data []byte) {
		require.NotEmpty(t, data)
		frames++
	})
	require.Equal(t, 5, frames)
}

func TestNewReaderMissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "nope.pcap"))
	require.Error(t, err)
}
