// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "errors"

var ErrInvalidConfig = errors.New("invalid config")
