package client

import (
	"fmt"

	"github.com/ValentinKolb/dKG/rpc/common"
	"github.com/ValentinKolb/dKG/rpc/serializer"
	"github.com/ValentinKolb/dKG/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// invokeRPCRequest sends a request to a rank and waits for the response.
// It fails if the response is an error response or of an unexpected type.
func invokeRPCRequest(rank uint64, req *common.Message, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*common.Message, error) {
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	respBytes, err := transport.Send(rank, reqBytes)
	if err != nil {
		return nil, err
	}

	resp := &common.Message{}
	if err := serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("rank %d: invalid response: %v", rank, err)
	}

	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return nil, fmt.Errorf("rank %d: %s", rank, resp.Err)
	}

	// responses echo the request type and worker
	if resp.MsgType != req.MsgType || resp.Worker != req.Worker {
		return nil, fmt.Errorf("rank %d: response %s of worker %d does not match request %s of worker %d",
			rank, resp.MsgType, resp.Worker, req.MsgType, req.Worker)
	}

	return resp, nil
}
