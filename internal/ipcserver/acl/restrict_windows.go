//go:build windows

// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package acl

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// restrictFilePermissions restricts the allowlist file's own DACL to the
// current process token's user SID, so a non-elevated local user can't
// read or tamper with the list of principals allowed to reach the pipe.
// This mirrors the original implementation's use of SetFileSecurityW with
// a single-SID DACL rather than the bare-minimum "Everyone" descriptor
// used for the pipe itself when no allowlist is configured.
func restrictFilePermissions(path string) error {
	token := windows.GetCurrentProcessToken()

	tokenUser, err := token.GetTokenUser()
	if err != nil {
		return fmt.Errorf("acl: get token user: %w", err)
	}
	sid := tokenUser.User.Sid

	ea := []windows.EXPLICIT_ACCESS{{
		AccessPermissions: windows.GENERIC_ALL,
		AccessMode:        windows.GRANT_ACCESS,
		Inheritance:       windows.NO_INHERITANCE,
		Trustee: windows.TRUSTEE{
			TrusteeForm:  windows.TRUSTEE_IS_SID,
			TrusteeType:  windows.TRUSTEE_IS_USER,
			TrusteeValue: windows.TrusteeValueFromSID(sid),
		},
	}}

	dacl, err := windows.ACLFromEntries(ea, nil)
	if err != nil {
		return fmt.Errorf("acl: build dacl: %w", err)
	}

	err = windows.SetNamedSecurityInfo(
		path,
		windows.SE_FILE_OBJECT,
		windows.DACL_SECURITY_INFORMATION|windows.PROTECTED_DACL_SECURITY_INFORMATION,
		nil, nil, dacl, nil,
	)
	if err != nil {
		return fmt.Errorf("acl: set file security: %w", err)
	}
	return nil
}
