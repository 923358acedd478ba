package common

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ValentinKolb/dKG/lib/comm"
	"github.com/lni/dragonboat/v4/logger"
)

func TestMessageTypeMapsKinds(t *testing.T) {
	for _, kind := range []comm.MessageKind{comm.KindVertexEdges, comm.KindVertexPathsSize, comm.KindVertexPath} {
		msgType := MessageTypeOf(kind)
		back, ok := msgType.Kind()
		if !ok || back != kind {
			t.Errorf("%s does not map back to itself", kind)
		}
	}
	if _, ok := MsgTError.Kind(); ok {
		t.Error("error messages carry no query")
	}
	if MessageTypeOf(comm.MessageKind(99)) != MsgTUnknown {
		t.Error("unknown kinds map to MsgTUnknown")
	}
}

func TestMessageTypeJSON(t *testing.T) {
	for msgType := MsgTUnknown; msgType <= MsgTVertexPath; msgType++ {
		data, err := json.Marshal(msgType)
		if err != nil {
			t.Fatal(err)
		}
		var back MessageType
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("%s: %v", msgType, err)
		}
		if back != msgType {
			t.Errorf("expected %s, got %s", msgType, back)
		}
	}
	var m MessageType
	if err := json.Unmarshal([]byte(`"set"`), &m); err == nil {
		t.Error("expected an error for an unknown type")
	}
}

func TestQueryResponse(t *testing.T) {
	req := NewQueryRequest(7, comm.KindVertexPath, []uint64{1, 2})
	resp := NewQueryResponse(req, []uint64{3}, nil)
	if resp.Worker != 7 || resp.MsgType != MsgTVertexPath || resp.Err != "" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestParseLogLevel(t *testing.T) {
	if lvl, err := ParseLogLevel("WARN"); err != nil || lvl != logger.WARNING {
		t.Errorf("expected WARNING, got %v (%v)", lvl, err)
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Error("expected an error for an invalid level")
	}
}

func TestConfigString(t *testing.T) {
	c := ServerConfig{
		Rank: 1, Ranks: 4, Endpoint: ":9001", LogLevel: "info",
		Graph: GraphConfig{WordSize: 21, Bins: 1024, ArenaRegionSize: 4096, ArenaRegions: 2},
	}
	s := c.String()
	for _, want := range []string{"1 of 4", ":9001", "WORD", "21"} {
		if !strings.Contains(strings.ToUpper(s), strings.ToUpper(want)) {
			t.Errorf("%q missing in\n%s", want, s)
		}
	}
	if err := c.Graph.Validate(); err != nil {
		t.Error(err)
	}
	c.Graph.WordSize = 33
	if err := c.Graph.Validate(); err == nil {
		t.Error("word size 33 does not fit into 64 bits")
	}

	cc := ClientConfig{Endpoints: []string{"a", "b"}}
	if !strings.Contains(cc.String(), "Rank 1") {
		t.Error("client endpoints should be listed by rank")
	}
}
