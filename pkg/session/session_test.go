package session

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/resolve"
)

func TestNew(t *testing.T) {
	r := resolve.NewCollector(resolve.NewStatic(), nil)
	s := New(r)

	if _, err := uuid.Parse(s.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", s.ID, err)
	}
	if s.Resolver != r {
		t.Error("Resolver not set")
	}
	if s.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}
	if s.Project != nil {
		t.Error("Project should be nil by default")
	}
	if New(r).ID == s.ID {
		t.Error("sessions should get distinct ids")
	}
}

func TestOptions(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	project := &resolve.Descriptor{Coordinate: artifact.MustParse("org.nuxeo:api:2.0")}

	s := New(nil, WithID("0123456789"), WithLogger(logger), WithProject(project))
	if s.ID != "0123456789" {
		t.Errorf("ID = %q", s.ID)
	}
	if s.Project != project {
		t.Error("Project not set")
	}

	s.Logger.Info("resolving")
	if !strings.Contains(buf.String(), "session=01234567") {
		t.Errorf("log output %q should carry the short session id", buf.String())
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("FromContext() on empty context should be nil")
	}
	s := New(nil)
	if got := FromContext(NewContext(context.Background(), s)); got != s {
		t.Error("FromContext() did not return the stored session")
	}
}
