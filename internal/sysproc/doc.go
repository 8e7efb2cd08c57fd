// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sysproc wraps the process primitives the shell is built from:
// spawning a stage process, creating pipes and duplicating descriptors.
//
// Every primitive returns a *PrimitiveError on failure and never retries.
// These failures have no degraded mode, so the top-level drivers hand them
// to Fatal, which prints a diagnostic naming the primitive and terminates
// the process. Keeping the termination out of the primitives themselves lets
// the orchestrator close the descriptors it owns before the process goes away.
package sysproc
