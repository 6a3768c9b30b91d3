// Package config provides a struct to store the application's configuration
package config

import (
	"go.infratographer.com/x/loggingx"
)

var AppConfig struct {
	Logging loggingx.Config
}
