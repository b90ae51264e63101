package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAlertWireFormat(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	alert := Alert{
		DeviceID:      "device-42",
		Type:          AlertIntrusion,
		Severity:      SeverityCritical,
		Description:   "Possible port scan from 198.51.100.3",
		SourceIP:      StringPtr("198.51.100.3"),
		DestinationIP: StringPtr("192.168.1.10"),
		Protocol:      StringPtr("TCP"),
		Port:          PortPtr(445),
		Timestamp:     ts,
	}

	data, err := json.Marshal(alert)
	require.NoError(t, err)

	expected := `{"device_id":"device-42","alert_type":"Intrusion","severity":"Critical",` +
		`"description":"Possible port scan from 198.51.100.3","source_ip":"198.51.100.3",` +
		`"destination_ip":"192.168.1.10","protocol":"TCP","port":445,` +
		`"timestamp":"2025-03-14T09:26:53Z"}`
	require.JSONEq(t, expected, string(data))
}

func TestAlertWireFormatNullsAbsentFields(t *testing.T) {
	alert := Alert{
		DeviceID:    "device-42",
		Type:        AlertBandwidth,
		Severity:    SeverityMedium,
		Description: "High bandwidth usage: 150.00 Mbps",
		Timestamp:   time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
	}

	data, err := json.Marshal(alert)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Nil(t, decoded["source_ip"])
	require.Nil(t, decoded["destination_ip"])
	require.Nil(t, decoded["protocol"])
	require.Nil(t, decoded["port"])
}
