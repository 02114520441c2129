package resolve

import "github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"

// DeriveScope returns the effective scope of a transitive dependency
// declared with scope child below a node with scope parent, and false when
// the dependency is not transitive at all.
//
//	parent \ child  compile   runtime
//	compile         compile   runtime
//	runtime         runtime   runtime
//	provided        provided  provided
//	test            test      test
//
// test, provided and system dependencies never propagate.
func DeriveScope(parent, child string) (string, bool) {
	if child == "" {
		child = artifact.ScopeCompile
	}
	if child != artifact.ScopeCompile && child != artifact.ScopeRuntime {
		return "", false
	}
	switch parent {
	case "", artifact.ScopeCompile:
		return child, true
	case artifact.ScopeRuntime:
		return artifact.ScopeRuntime, true
	case artifact.ScopeProvided, artifact.ScopeSystem:
		return artifact.ScopeProvided, true
	case artifact.ScopeTest:
		return artifact.ScopeTest, true
	}
	return child, true
}
