package stats

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "stats")
