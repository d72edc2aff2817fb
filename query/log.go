package query

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "query")
