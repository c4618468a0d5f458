package messages

import (
	"strings"

	"github.com/bitrise-io/go-xcode/xcodeproject/serialized"
)

type scope int

const (
	assemblyScope scope = iota
	collectionScope
	classScope
	testCaseScope
	testScope
)

// IDs bundles the unique IDs locating a message in the test run hierarchy.
// Empty strings are treated as not provided.
type IDs struct {
	AssemblyUniqueID       string
	TestCollectionUniqueID string
	TestClassUniqueID      *string
	TestMethodUniqueID     *string
	TestCaseUniqueID       string
	TestUniqueID           string
}

// Identity is embedded in every message. Which IDs it carries depends on the
// scope of the message: an assembly level message only knows its assembly,
// a test level message knows everything down to the test.
type Identity struct {
	scope scope
	owner string

	assemblyUniqueID       Required[string]
	testCollectionUniqueID Required[string]
	testClassUniqueID      *string
	testMethodUniqueID     *string
	testCaseUniqueID       Required[string]
	testUniqueID           Required[string]
}

func newIdentity(s scope, owner string) Identity {
	return Identity{scope: s, owner: owner}
}

// SetIDs assigns the IDs the message scope carries and ignores the rest.
// Nothing is assigned when it returns an error.
func (id *Identity) SetIDs(ids IDs) error {
	if id.scope == classScope && ids.TestClassUniqueID != nil && *ids.TestClassUniqueID == "" {
		return newInvalidArgumentError("TestClassUniqueID", "TestClassUniqueID cannot be empty")
	}

	if ids.AssemblyUniqueID != "" {
		id.assemblyUniqueID.Set(ids.AssemblyUniqueID)
	}
	if id.scope >= collectionScope && ids.TestCollectionUniqueID != "" {
		id.testCollectionUniqueID.Set(ids.TestCollectionUniqueID)
	}
	if id.scope >= classScope {
		id.testClassUniqueID = copyString(ids.TestClassUniqueID)
	}
	if id.scope >= testCaseScope {
		id.testMethodUniqueID = copyString(ids.TestMethodUniqueID)
		if ids.TestCaseUniqueID != "" {
			id.testCaseUniqueID.Set(ids.TestCaseUniqueID)
		}
	}
	if id.scope >= testScope && ids.TestUniqueID != "" {
		id.testUniqueID.Set(ids.TestUniqueID)
	}
	return nil
}

// AssemblyUniqueID ...
func (id Identity) AssemblyUniqueID() (string, error) {
	return id.assemblyUniqueID.get(id.owner, "AssemblyUniqueID")
}

// TestCollectionUniqueID ...
func (id Identity) TestCollectionUniqueID() (string, error) {
	return id.testCollectionUniqueID.get(id.owner, "TestCollectionUniqueID")
}

// TestClassUniqueID is nil for tests that do not belong to a class. Class
// level messages always have one.
func (id Identity) TestClassUniqueID() (*string, error) {
	if id.scope == classScope && id.testClassUniqueID == nil {
		return nil, &MissingValueError{Type: id.owner, Field: "TestClassUniqueID"}
	}
	return copyString(id.testClassUniqueID), nil
}

// TestMethodUniqueID ...
func (id Identity) TestMethodUniqueID() *string {
	return copyString(id.testMethodUniqueID)
}

// TestCaseUniqueID ...
func (id Identity) TestCaseUniqueID() (string, error) {
	return id.testCaseUniqueID.get(id.owner, "TestCaseUniqueID")
}

// TestUniqueID ...
func (id Identity) TestUniqueID() (string, error) {
	return id.testUniqueID.get(id.owner, "TestUniqueID")
}

func (id Identity) serialize(w *ObjectWriter) {
	if v, ok := id.assemblyUniqueID.Value(); ok {
		w.String("AssemblyUniqueID", v)
	}
	if id.scope >= collectionScope {
		if v, ok := id.testCollectionUniqueID.Value(); ok {
			w.String("TestCollectionUniqueID", v)
		}
	}
	if id.scope >= classScope {
		w.OptionalString("TestClassUniqueID", id.testClassUniqueID)
	}
	if id.scope >= testCaseScope {
		w.OptionalString("TestMethodUniqueID", id.testMethodUniqueID)
		if v, ok := id.testCaseUniqueID.Value(); ok {
			w.String("TestCaseUniqueID", v)
		}
	}
	if id.scope >= testScope {
		if v, ok := id.testUniqueID.Value(); ok {
			w.String("TestUniqueID", v)
		}
	}
}

func (id *Identity) deserialize(root serialized.Object) error {
	ids := IDs{}

	for _, field := range []struct {
		key    string
		scope  scope
		target *string
	}{
		{key: "AssemblyUniqueID", scope: assemblyScope, target: &ids.AssemblyUniqueID},
		{key: "TestCollectionUniqueID", scope: collectionScope, target: &ids.TestCollectionUniqueID},
		{key: "TestCaseUniqueID", scope: testCaseScope, target: &ids.TestCaseUniqueID},
		{key: "TestUniqueID", scope: testScope, target: &ids.TestUniqueID},
	} {
		value, err := readString(root, field.key)
		if err != nil {
			return err
		}
		if value == nil {
			continue
		}
		if *value == "" && id.scope >= field.scope {
			return newInvalidArgumentError(field.key, "%s cannot be empty", field.key)
		}
		*field.target = *value
	}

	var err error
	if ids.TestClassUniqueID, err = readString(root, "TestClassUniqueID"); err != nil {
		return err
	}
	if ids.TestMethodUniqueID, err = readString(root, "TestMethodUniqueID"); err != nil {
		return err
	}

	return id.SetIDs(ids)
}

func (id Identity) validate(invalid PropertySet) {
	invalid.require("AssemblyUniqueID", id.assemblyUniqueID)
	if id.scope >= collectionScope {
		invalid.require("TestCollectionUniqueID", id.testCollectionUniqueID)
	}
	if id.scope == classScope && id.testClassUniqueID == nil {
		invalid.Add("TestClassUniqueID")
	}
	if id.scope >= testCaseScope {
		invalid.require("TestCaseUniqueID", id.testCaseUniqueID)
	}
	if id.scope >= testScope {
		invalid.require("TestUniqueID", id.testUniqueID)
	}
}

func (id Identity) String() string {
	parts := []string{id.owner, "asm=" + quotedRequired(id.assemblyUniqueID)}
	if id.scope >= collectionScope {
		parts = append(parts, "coll="+quotedRequired(id.testCollectionUniqueID))
	}
	if id.scope >= classScope {
		parts = append(parts, "class="+quoted(id.testClassUniqueID))
	}
	if id.scope >= testCaseScope {
		parts = append(parts, "method="+quoted(id.testMethodUniqueID), "case="+quotedRequired(id.testCaseUniqueID))
	}
	if id.scope >= testScope {
		parts = append(parts, "test="+quotedRequired(id.testUniqueID))
	}
	return strings.Join(parts, " ")
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
