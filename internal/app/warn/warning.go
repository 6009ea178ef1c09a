// Package warn reports failures of background jobs, which have no caller to
// return an error to.
package warn

import (
	log "github.com/sirupsen/logrus"

	"server-tonix-app/internal/app/metrics"
)

func Must(desc string, err error) error {
	if err != nil {
		log.Errorf("%s failed: %+v", desc, err)
		metrics.JobFailures.WithLabelValues(desc).Inc()
	}
	return err
}
