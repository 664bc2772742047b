package text_test

import (
	"fmt"

	"github.com/walteh/translaterc/pkg/text"
)

func ExampleSimpleTextReplacer_Replace() {
	replacer, err := text.NewSimpleTextReplacer([]text.ReplacementRule{
		{FromText: "^```[a-z+]*\\n", ToText: "", Regexp: true},
		{FromText: "REAL(8)", ToText: "double", FileFilterGlob: "**/*.cpp"},
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	out, n := replacer.Replace("out/a.cpp", "```cpp\nREAL(8) x;\n```\n")
	fmt.Print(out)
	fmt.Printf("Changes: %d\n", n)

	// Output:
	// double x;
	// Changes: 3
}

func ExampleCommentFilter_Filter() {
	f := text.NewCommentFilter(nil)
	for _, l := range f.Filter([]string{"! header\n", "x = 1\n", "// note\n", "y = 2\n"}) {
		fmt.Print(l)
	}

	// Output:
	// x = 1
	// y = 2
}
