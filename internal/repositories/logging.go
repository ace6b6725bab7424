package repositories

import (
	log "github.com/sirupsen/logrus"
)

func logWarn(op, message string, err error) {
	log.WithFields(log.Fields{"op": op}).Warn(message, ": ", err)
}
