// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Helpers cover working-directory changes (MustChdir), file fixtures
// (MustMkdirAll, MustWriteFile) and fake device tools (WriteFakeTool) that
// stand in for adb and fastboot in tests.
package testutil
