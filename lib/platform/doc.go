// Package platform detects the environment the UI runs in: inside the desktop shell
// or a plain browser, and the coarse OS family (darwin, win32, linux).
//
// Detection is a user-agent heuristic and runs once when a context starts; the
// resulting Info is immutable. Its Attributes are set on the document root, where
// styling code reads them:
//
//	<html data-desktop="true" data-platform="darwin">
package platform
