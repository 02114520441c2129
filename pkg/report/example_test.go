package report_test

import (
	"os"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/graph"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/report"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/resolve"
)

func Example() {
	dep := func(s string) artifact.Dependency { return artifact.NewDependency(artifact.MustParse(s)) }

	g := graph.New(nil)
	g.AddRootTree(&resolve.Tree{
		Dependency: dep("org.nuxeo:core:2.0"),
		Children: []*resolve.Tree{
			{Dependency: dep("org.nuxeo:runtime:2.0")},
			{Dependency: dep("org.nuxeo:api:2.0")},
		},
	})

	report.WriteTree(os.Stdout, g, nil, report.Options{})
	report.WriteFlat(os.Stdout, g, nil, report.Options{Format: report.KVFileGAV})
	// Output:
	// org.nuxeo:core:2.0:jar::compile
	//  |-- org.nuxeo:runtime:2.0:jar::compile
	//  |-- org.nuxeo:api:2.0:jar::compile
	// api-2.0.jar=org.nuxeo:api:2.0:jar::compile
	// runtime-2.0.jar=org.nuxeo:runtime:2.0:jar::compile
}
