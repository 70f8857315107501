package config

import "errors"

var ErrMissingMongoURI = errors.New("config: MONGODB_URI is required")
