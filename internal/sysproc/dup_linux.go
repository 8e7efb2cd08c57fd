// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sysproc

import "golang.org/x/sys/unix"

// dupOnto uses dup3 because some linux ports have no dup2 syscall.
func dupOnto(src, dst int) error {
	return unix.Dup3(src, dst, 0) //nolint:wrapcheck
}
