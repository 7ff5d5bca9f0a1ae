package latencytrace

// ResetActivationForTest clears the process-wide activation so a test can
// call Activate again. Only exported to _test.go files in this package's
// own test binary; the external latencytrace_test package registers it
// with t.Cleanup in each test that activates.
func ResetActivationForTest() {
	activeHandle.Store(nil)
}
