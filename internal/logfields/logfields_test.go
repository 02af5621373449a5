package logfields

import "testing"

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    interface{}
	}{
		{"PlanID", KeyPlanID, "p1", PlanID("p1")},
		{"GenerationID", KeyGenerationID, "g1", GenerationID("g1")},
		{"Stage", KeyStage, "building", Stage("building")},
		{"ArtifactID", KeyArtifactID, "a1", ArtifactID("a1")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"Path", KeyPath, "/api/planos", Path("/api/planos")},
		{"RemoteAddr", KeyRemoteAddr, "127.0.0.1", RemoteAddr("127.0.0.1")},
		{"UserAgent", KeyUserAgent, "curl", UserAgent("curl")},
	}
	for _, c := range cases {
		attr, ok := c.attr.(interface{ String() string })
		if !ok {
			t.Fatalf("%s: unexpected attr type", c.name)
		}
		want := c.attrKey + "=" + c.attrVal
		if attr.String() != want {
			t.Errorf("%s: got %q want %q", c.name, attr.String(), want)
		}
	}
}

func TestErrorAttr(t *testing.T) {
	if got := Error(nil).String(); got != "error=" {
		t.Errorf("nil error attr: got %q", got)
	}
}
