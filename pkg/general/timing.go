package general

import (
	"time"

	"github.com/sirupsen/logrus"
)

// use by putting something like the following into the start of a function:
// defer general.TimeTrack(time.Now(), "functionName", log)
func TimeTrack(start time.Time, name string, log logrus.FieldLogger) {
	elapsed := time.Since(start)
	log.Debugf("%s took %s", name, elapsed)
}
