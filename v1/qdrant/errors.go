package qdrant

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// classifyError maps a gRPC failure onto a vectordb.Reason.
func classifyError(err error) vectordb.Reason {
	st, ok := status.FromError(err)
	if !ok {
		return vectordb.ReasonUnknown
	}

	switch st.Code() {
	case codes.Unavailable, codes.Aborted, codes.ResourceExhausted:
		return vectordb.ReasonUnavailable
	case codes.DeadlineExceeded:
		return vectordb.ReasonTimeout
	case codes.InvalidArgument, codes.NotFound, codes.PermissionDenied,
		codes.Unauthenticated, codes.FailedPrecondition:
		return vectordb.ReasonRejected
	default:
		return vectordb.ReasonUnknown
	}
}
