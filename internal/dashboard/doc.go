// Package dashboard holds the interactive state of the RelayMail dashboard:
// the modal state machine and the coordinator that runs key creation,
// revocation, clipboard copy and logout on behalf of the user.
//
// The coordinator never touches a renderer directly. After a successful
// mutation it asks for a region refresh through a RefreshFunc, so the
// caller decides how and when the region is reloaded. Outcomes go to an
// optional Recorder for the local activity history.
package dashboard
