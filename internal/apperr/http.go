package apperr

import (
	"net/http"

	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

// WriteError logs err and writes it as {"error": ...} with the mapped status code.
// Infrastructure failures are logged at error level, caller mistakes at debug.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Errorf("%s %s: %s", r.Method, r.URL.Path, err)
	} else {
		log.Debugf("%s %s [%d]: %s", r.Method, r.URL.Path, status, err)
	}
	pkg.WriteJSONError(w, Message(err), status)
}
