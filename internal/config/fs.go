// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import "github.com/spf13/afero"

// FsFactory returns the filesystem the config file is read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}
