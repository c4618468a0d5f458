package messages

import (
	"strconv"

	"github.com/bitrise-io/go-xcode/xcodeproject/serialized"
)

// DiscoveryCompleteType ...
const DiscoveryCompleteType = "discovery-complete"

// DiscoveryComplete reports the end of test discovery for an assembly.
type DiscoveryComplete struct {
	Identity

	testCasesToRun Required[int]
}

// NewDiscoveryComplete ...
func NewDiscoveryComplete() *DiscoveryComplete {
	return &DiscoveryComplete{
		Identity: newIdentity(assemblyScope, "DiscoveryComplete"),
	}
}

// MessageType ...
func (m *DiscoveryComplete) MessageType() string { return DiscoveryCompleteType }

// TestCasesToRun is the number of test cases selected after filtering.
func (m *DiscoveryComplete) TestCasesToRun() (int, error) {
	return m.testCasesToRun.get(m.owner, "TestCasesToRun")
}

// SetTestCasesToRun ...
func (m *DiscoveryComplete) SetTestCasesToRun(n int) {
	m.testCasesToRun.Set(n)
}

func (m *DiscoveryComplete) serialize(w *ObjectWriter) {
	m.Identity.serialize(w)

	if v, ok := m.testCasesToRun.Value(); ok {
		w.Int("TestCasesToRun", v)
	}
}

func (m *DiscoveryComplete) deserialize(root serialized.Object) error {
	if err := m.Identity.deserialize(root); err != nil {
		return err
	}

	n, err := readInt(root, "TestCasesToRun")
	if err != nil {
		return err
	}
	if n != nil {
		m.testCasesToRun.Set(*n)
	}
	return nil
}

func (m *DiscoveryComplete) validateObjectState(invalid PropertySet) {
	m.Identity.validate(invalid)

	invalid.require("TestCasesToRun", m.testCasesToRun)
}

func (m *DiscoveryComplete) String() string {
	toRun := "null"
	if v, ok := m.testCasesToRun.Value(); ok {
		toRun = strconv.Itoa(v)
	}
	return m.Identity.String() + " toRun=" + toRun
}
