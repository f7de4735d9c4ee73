// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigMergeFailedId Id = iota + 1
	UnknownProfileId
	StagingFailedId
	UnsupportedSchemeId
	ProtocolInvalidId
	UnknownAdapterId
	ModelFailedId
	SettingsLoadFailedId
)

type MarkdownMsg string

type Issue struct {
	id    Id          // ID used to look up the issue
	mdMsg MarkdownMsg // Markdown text rendered at the CLI boundary
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	configMergeFailedIssue = &Issue{
		id: ConfigMergeFailedId,
		mdMsg: `
# Configuration merge failed!

The configuration sources could not be merged into a single run config.

## Common causes:
- A key holds a table in one source and a scalar in another
- A malformed ` + "`--set`" + ` override (empty path segment, missing '=')
- Invalid TOML/YAML/JSON syntax in a config file

## Things you can try:
- Check the offending path named in the error message
- Make sure every source agrees on whether a key is a table
- Quote string values that look like numbers:
~~~
$ mrp run model.mrp.toml --set 'input.tag="0042"'
~~~`,
	}

	unknownProfileIssue = &Issue{
		id: UnknownProfileId,
		mdMsg: `
# Profile selection failed!

A profile was requested that does not exist, or a section defines several
profiles and none was selected.

## Things you can try:
- List the profiles defined under the section:
~~~toml
[output.profile.stdout]
spec = "stdout"

[output.profile.file]
spec = "filesystem"
dir  = "results"
~~~

- Select one explicitly:
~~~
$ mrp run model.mrp.toml --profile output=stdout
~~~

- Or name one profile ` + "`default`" + ` so it is used when nothing is selected.`,
	}

	stagingFailedIssue = &Issue{
		id: StagingFailedId,
		mdMsg: `
# File staging failed!

One of the file references in ` + "`model.files`" + ` could not be resolved.
Staging is all-or-nothing: a single failing reference aborts the run
before the model starts.

## Common causes:
- A local path that does not exist (paths resolve against the working directory)
- An unreachable HTTP(S) URL or a non-200 response

## Things you can try:
- Check the logical name and URI named in the error message
- Verify local paths relative to where you invoked mrp
- Fetch the URL manually to confirm it is reachable`,
	}

	unsupportedSchemeIssue = &Issue{
		id: UnsupportedSchemeId,
		mdMsg: `
# Unsupported URI scheme!

File references support bare paths, ` + "`file:`" + `, ` + "`http:`" + ` and ` + "`https:`" + ` URIs.
Cloud-storage schemes (s3, gs, az, ...) are not supported.

## Things you can try:
- Download the object yourself and reference the local path
- Serve it over HTTP(S) and reference the URL`,
	}

	protocolInvalidIssue = &Issue{
		id: ProtocolInvalidId,
		mdMsg: `
# Invalid run document!

The built run document does not satisfy the MRP transport schema.

## Things you can try:
- Check the field named in the error message
- Make sure sections hold the expected types (e.g. ` + "`output.spec`" + ` is a string)
- Keep config files to the five transport sections: runtime, model, input, output
  (plus the generated mrp metadata)`,
	}

	unknownAdapterIssue = &Issue{
		id: UnknownAdapterId,
		mdMsg: `
# Unknown runtime adapter!

The ` + "`runtime.spec`" + ` value does not match a registered adapter.

## Built-in adapters:
- **process**: spawns the model as a child process (default)
- **inline**: calls a registered in-process callable
- **shell**: runs ` + "`runtime.script`" + ` in the built-in shell interpreter

## Example:
~~~toml
[runtime]
spec    = "process"
command = "python"
args    = ["-m", "mymodel"]
~~~`,
	}

	modelFailedIssue = &Issue{
		id: ModelFailedId,
		mdMsg: `
# Model run failed!

The pipeline ran the model, but the model reported a failure (non-zero
exit code or timeout). The captured stderr above usually explains why.

## Things you can try:
- Run the model command manually with the same inputs
- Raise ` + "`runtime.timeout`" + ` if the run was killed at the deadline (exit 124)
- Re-run with --verbose for the full pipeline trace`,
	}

	settingsLoadFailedIssue = &Issue{
		id: SettingsLoadFailedId,
		mdMsg: `
# Failed to load settings!

The mrp settings file could not be read.

## Settings file locations:
- Linux: ~/.config/mrp/config.toml
- macOS: ~/Library/Application Support/mrp/config.toml
- Windows: %APPDATA%\mrp\config.toml

## Things you can try:
- Check the TOML syntax
- Remove the file to fall back to defaults`,
	}

	issues = map[Id]*Issue{
		configMergeFailedIssue.Id():  configMergeFailedIssue,
		unknownProfileIssue.Id():     unknownProfileIssue,
		stagingFailedIssue.Id():      stagingFailedIssue,
		unsupportedSchemeIssue.Id():  unsupportedSchemeIssue,
		protocolInvalidIssue.Id():    protocolInvalidIssue,
		unknownAdapterIssue.Id():     unknownAdapterIssue,
		modelFailedIssue.Id():        modelFailedIssue,
		settingsLoadFailedIssue.Id(): settingsLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}

// Ids returns all known issue ids in ascending order.
func Ids() []Id {
	ids := maps.Keys(issues)
	slices.Sort(ids)
	return ids
}
