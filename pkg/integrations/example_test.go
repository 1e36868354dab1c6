package integrations_test

import (
	"fmt"

	"github.com/matzehuels/stackdiff/pkg/integrations"
)

func ExamplePathEscape() {
	// Scoped npm packages occupy a single path segment
	fmt.Println(integrations.PathEscape("@babel/core"))
	fmt.Println(integrations.PathEscape("express"))
	// Output:
	// @babel%2Fcore
	// express
}
