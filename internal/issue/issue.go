// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ForgefileNotFoundId Id = iota + 1
	ForgefileParseErrorId
	PipelineNotFoundId
	NdkNotFoundId
	ShellNotFoundId
	CacheCorruptId
	StepFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to look the issue up
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // links into the project docs
	extLinks []HttpLink  // external links that might help the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	forgefileNotFoundIssue = &Issue{
		id: ForgefileNotFoundId,
		mdMsg: `
# No forgefile found!

We searched for a forgefile but couldn't find one in the expected locations.

## Search locations (in order of precedence):
1. The --forgefile flag
2. Current directory (forgefile.cue)

## Things you can try:
- Create a forgefile in your current directory:
~~~
$ crossforge init
~~~

- Or point at an existing one:
~~~
$ crossforge run --forgefile path/to/forgefile.cue
~~~`,
	}

	forgefileParseErrorIssue = &Issue{
		id: ForgefileParseErrorId,
		mdMsg: `
# Failed to parse forgefile!

Your forgefile contains syntax errors or invalid configuration.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names or step kinds
- Missing required fields (name and kind on steps, triple on target)

## Things you can try:
- Check the error message above for the specific field path
- Compare against a fresh scaffold:
~~~
$ crossforge init
~~~

## Example of a valid step:
~~~cue
pipelines: default: [
	{name: "register-target", kind: "target-add"},
	{name: "build", kind: "build", args: ["--release"]},
]
~~~`,
	}

	pipelineNotFoundIssue = &Issue{
		id: PipelineNotFoundId,
		mdMsg: `
# Pipeline not found!

The pipeline you named is not defined in the forgefile.

## Things you can try:
- List the defined pipelines:
~~~
$ crossforge plan
~~~

- Check for typos in the pipeline name
- Omit the name to run the 'default' pipeline`,
	}

	ndkNotFoundIssue = &Issue{
		id: NdkNotFoundId,
		mdMsg: `
# NDK not found!

The environment variable that should point at the NDK root is unset, or the
directory it names does not exist.

## Things you can try:
- Export the variable before running:
~~~
$ export ANDROID_NDK_ROOT=/opt/ndk
~~~

- Install an NDK:
~~~
$ sdkmanager 'ndk;21.4.7075529'
~~~

- Change 'target.ndk.root_env' in your forgefile if your CI image exports a
  different variable (e.g. NDK_HOME)`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# Shell not found!

Could not find a suitable shell for the 'native' runner.

## Shells we look for:
- Linux/macOS: $SHELL, bash, sh
- Windows: pwsh, powershell, cmd

## Things you can try:
- Install bash or another POSIX shell
- Set the SHELL environment variable
- Use the built-in 'virtual' runner instead:
~~~cue
{name: "install-jdk", kind: "script", runner: "virtual", script: "..."}
~~~`,
	}

	cacheCorruptIssue = &Issue{
		id: CacheCorruptId,
		mdMsg: `
# Cache bundle unreadable!

A stored cache bundle exists for this key but could not be unpacked.

## Things you can try:
- Clear the cache and rebuild cold:
~~~
$ crossforge cache clear
~~~

- Check free disk space on the agent; truncated bundles are the usual cause`,
	}

	stepFailedIssue = &Issue{
		id: StepFailedId,
		mdMsg: `
# Step failed!

A pipeline step exited with a non-zero status, so the remaining steps were
not executed.

## Common causes:
- Command not found in PATH
- Network or package-source unavailability during toolchain installation
- A pruned NDK version still referenced by the cargo config

## Things you can try:
- Re-run with verbose output:
~~~
$ crossforge --verbose run
~~~

- Inspect the resolved environment first:
~~~
$ crossforge plan
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the crossforge configuration file.

## Configuration file locations:
- Linux: ~/.config/crossforge/config.cue
- macOS: ~/Library/Application Support/crossforge/config.cue
- Windows: %APPDATA%\crossforge\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ crossforge config init
~~~

- Remove the config file to fall back to defaults`,
	}

	issues = map[Id]*Issue{
		forgefileNotFoundIssue.Id():   forgefileNotFoundIssue,
		forgefileParseErrorIssue.Id(): forgefileParseErrorIssue,
		pipelineNotFoundIssue.Id():    pipelineNotFoundIssue,
		ndkNotFoundIssue.Id():         ndkNotFoundIssue,
		shellNotFoundIssue.Id():       shellNotFoundIssue,
		cacheCorruptIssue.Id():        cacheCorruptIssue,
		stepFailedIssue.Id():          stepFailedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
