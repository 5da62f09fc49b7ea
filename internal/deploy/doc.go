// SPDX-License-Identifier: MPL-2.0

// Package deploy builds a module archive and installs it on a device.
//
// A run walks a fixed sequence of stages: connectivity check, archive,
// transfer, staging directory, unpack, install marker, restart and local
// cleanup. Each stage either continues, ends the run successfully, or
// aborts it with a *StageError. Nothing done on the device is rolled back.
package deploy
