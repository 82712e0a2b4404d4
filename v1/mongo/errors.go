package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// Server error codes, see
// https://github.com/mongodb/mongo/blob/master/src/mongo/base/error_codes.yml
var (
	unavailableCodes = []int{6, 7, 89, 91, 189, 262, 9001, 10107, 11600, 11602, 13435, 13436}
	timeoutCodes     = []int{50}
	rejectedCodes    = []int{2, 13, 18, 26, 40324, 8000}
)

// classifyError maps a driver or server failure onto a vectordb.Reason.
func classifyError(err error) vectordb.Reason {
	switch {
	case mongo.IsTimeout(err):
		return vectordb.ReasonTimeout
	case mongo.IsNetworkError(err), errors.Is(err, mongo.ErrClientDisconnected):
		return vectordb.ReasonUnavailable
	}

	var se mongo.ServerError
	if errors.As(err, &se) {
		for _, group := range []struct {
			codes  []int
			reason vectordb.Reason
		}{
			{timeoutCodes, vectordb.ReasonTimeout},
			{unavailableCodes, vectordb.ReasonUnavailable},
			{rejectedCodes, vectordb.ReasonRejected},
		} {
			for _, code := range group.codes {
				if se.HasErrorCode(code) {
					return group.reason
				}
			}
		}
	}
	return vectordb.ReasonUnknown
}
