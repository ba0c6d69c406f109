// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	DescriptorNotFoundId Id = iota + 1
	DescriptorParseErrorId
	ConfigLoadFailedId
	InvalidRootId
	DependencyCycleId
	ModuleNotFoundId
	WatchFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown guidance shown for an issue.
	MarkdownMsg string

	// HttpLink is a documentation link.
	HttpLink string

	// Issue is a catalog entry: a known failure with guidance on fixing it.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Title returns the first Markdown heading of the guidance, without the
// leading hashes.
func (i *Issue) Title() string {
	for line := range strings.SplitSeq(string(i.mdMsg), "\n") {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return title
		}
	}
	return ""
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the guidance with the given glamour style ("dark", "light",
// "notty" or a style file path).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	descriptorNotFoundIssue = &Issue{
		id: DescriptorNotFoundId,
		mdMsg: `
# No project descriptor found

The index needs a project descriptor listing modules, libraries and SDKs.

## Things you can try
- Point the CLI at a descriptor:
~~~
$ rootindex --project ./project.cue classify src/main.go
~~~
- Or set it once in the configuration file:
~~~cue
project: descriptor: "./project.toml"
~~~`,
	}

	descriptorParseErrorIssue = &Issue{
		id: DescriptorParseErrorId,
		mdMsg: `
# The project descriptor could not be parsed

Descriptors are CUE (` + "`.cue`" + `) or TOML (` + "`.toml`" + `) files.

## Minimal CUE descriptor
~~~cue
output: "out"
modules: [{
	name: "app"
	content_roots: [{
		path: "app"
		source_roots: [{path: "app/src"}]
	}]
}]
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# The configuration could not be loaded

## Things you can try
- Show the effective configuration:
~~~
$ rootindex config show
~~~
- Check the file against the keys listed by ` + "`rootindex config --help`" + `.
- Environment variables with the ` + "`ROOTINDEX_`" + ` prefix override the file.`,
	}

	invalidRootIssue = &Issue{
		id: InvalidRootId,
		mdMsg: `
# Some roots were skipped

Malformed roots are left out of the index and every other root is still
indexed. Common causes:
- a relative or empty root path
- a source root outside every content root of its module
- a module-level library listed among the project libraries`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Module dependency cycle

Cycles do not break the index, but build tools usually reject them. Remove one
of the edges listed in the message.`,
	}

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Unknown module

The module is not declared in the project descriptor. List the declared
modules with:
~~~
$ rootindex modules
~~~`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# The file watcher stopped

The operating system refused to watch more directories or a watched root
disappeared.

## Things you can try
- On Linux raise ` + "`fs.inotify.max_user_watches`" + `.
- Add large generated directories to ` + "`watch.ignore`" + `.`,
	}

	issues = map[Id]*Issue{
		descriptorNotFoundIssue.Id():   descriptorNotFoundIssue,
		descriptorParseErrorIssue.Id(): descriptorParseErrorIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		invalidRootIssue.Id():          invalidRootIssue,
		dependencyCycleIssue.Id():      dependencyCycleIssue,
		moduleNotFoundIssue.Id():       moduleNotFoundIssue,
		watchFailedIssue.Id():          watchFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
