package code

import (
	"strings"
)

// Profile describes one language the editor offers. ID is the Judge0
// language id; the set is fixed at process start.
type Profile struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Extension     string `json:"extension"`
	EditorSyntax  string `json:"editor_syntax"`
	DefaultSource string `json:"default_source"`
}

// FileName is the name the editor saves the source under.
func (p Profile) FileName() string {
	return "Program." + p.Extension
}

var profiles = []Profile{
	{
		ID:           62,
		Name:         "Java",
		Extension:    "java",
		EditorSyntax: "java",
		DefaultSource: `public class Main {
    public static void main(String[] args) {
        System.out.println("Hello, World!");
    }
}
`,
	},
	{
		ID:           54,
		Name:         "C++",
		Extension:    "cpp",
		EditorSyntax: "cpp",
		DefaultSource: `#include <iostream>

int main() {
    std::cout << "Hello, World!" << std::endl;
    return 0;
}
`,
	},
	{
		ID:            71,
		Name:          "Python",
		Extension:     "py",
		EditorSyntax:  "python",
		DefaultSource: "print(\"Hello, World!\")\n",
	},
	{
		ID:            63,
		Name:          "JavaScript",
		Extension:     "js",
		EditorSyntax:  "javascript",
		DefaultSource: "console.log(\"Hello, World!\");\n",
	},
}

// Profiles returns the supported languages in display order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// Default returns the profile the editor opens with.
func Default() Profile {
	return profiles[0]
}

// Lookup finds a profile by Judge0 language id.
func Lookup(id int) (Profile, bool) {
	for _, p := range profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// ByName matches the display name, file extension or editor syntax id,
// ignoring case.
func ByName(name string) (Profile, bool) {
	for _, p := range profiles {
		if strings.EqualFold(p.Name, name) ||
			strings.EqualFold(p.Extension, name) ||
			strings.EqualFold(p.EditorSyntax, name) {
			return p, true
		}
	}
	return Profile{}, false
}

// ByExtension finds a profile from a file extension, with or without the
// leading dot.
func ByExtension(ext string) (Profile, bool) {
	ext = strings.TrimPrefix(ext, ".")
	for _, p := range profiles {
		if strings.EqualFold(p.Extension, ext) {
			return p, true
		}
	}
	return Profile{}, false
}
