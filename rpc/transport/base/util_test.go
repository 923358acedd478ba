package base

import (
	"bytes"
	"net"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload := []byte("vertex query")
	go func() {
		if err := writeFrame(client, 3, 99, payload); err != nil {
			t.Error(err)
		}
		if err := writeFrame(client, 4, 100, nil); err != nil {
			t.Error(err)
		}
	}()

	rank, id, data, err := readFrame(server, make([]byte, 8))
	if err != nil {
		t.Fatal(err)
	}
	if rank != 3 || id != 99 || !bytes.Equal(data, payload) {
		t.Errorf("unexpected frame: rank %d, id %d, data %q", rank, id, data)
	}

	rank, id, data, err = readFrame(server, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rank != 4 || id != 100 || len(data) != 0 {
		t.Errorf("unexpected empty frame: rank %d, id %d, data %q", rank, id, data)
	}
}

func TestReadFrameTruncated(t *testing.T) {
	if _, _, _, err := readFrame(bytes.NewReader([]byte{0, 0, 0}), nil); err == nil {
		t.Error("expected an error for a truncated header")
	}

	header := make([]byte, frameHeaderSize)
	header[19] = 10 // announces 10 bytes of payload
	if _, _, _, err := readFrame(bytes.NewReader(append(header, 'x')), nil); err == nil {
		t.Error("expected an error for a truncated payload")
	}
}
