package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
)

// errorEnvelope is the JSON body spec §6.2 requires for every failed
// request.
type errorEnvelope struct {
	Code    uint16 `json:"code"`
	Message string `json:"message"`
}

// writeError classifies err against the chronoerr taxonomy (spec §7) and
// writes the matching status and envelope. Anything not one of the known
// kinds is treated as internal: logged with its cause, reported to the
// client as a bare 500 with no detail.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var (
		missing      *chronoerr.MissingError
		request      *chronoerr.RequestError
		auth         *chronoerr.AuthError
		storageTrans *chronoerr.StorageTransient
		corrupt      *chronoerr.CorruptState
	)

	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.As(err, &missing):
		status, message = http.StatusNotFound, missing.Error()
	case errors.As(err, &request):
		status, message = http.StatusBadRequest, request.Error()
	case errors.As(err, &auth):
		status, message = http.StatusUnauthorized, auth.Error()
	case errors.As(err, &storageTrans):
		status, message = http.StatusServiceUnavailable, "store temporarily unavailable"
	case errors.As(err, &corrupt):
		log.Error().Err(err).Msg("corrupt state surfaced to http layer")
	default:
		log.Error().Err(err).Msg("unclassified error surfaced to http layer")
	}

	writeJSON(w, status, errorEnvelope{Code: uint16(status), Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
