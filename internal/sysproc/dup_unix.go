// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build unix && !linux

package sysproc

import "golang.org/x/sys/unix"

func dupOnto(src, dst int) error {
	return unix.Dup2(src, dst) //nolint:wrapcheck
}
