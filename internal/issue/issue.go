// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	NoDeviceFoundId Id = iota + 1
	ADBNotFoundId
	ArchiveFailedId
	RemoteCommandFailedId
	ProjectNotFoundId
	ConfigLoadFailedId
	InvalidModuleIdId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// HttpLink is a URL pointing to further reading.
	HttpLink string

	// Issue is a known failure mode with guidance for the user.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		extLinks []HttpLink
	}
)

//nolint:gochecknoglobals // Test seam for glamour rendering.
var render = glamour.Render

var (
	noDeviceFoundIssue = &Issue{
		id: NoDeviceFoundId,
		mdMsg: `
# No device found!

No device in the ` + "`device`" + ` state is connected over adb, and no
device is waiting in fastboot.

## Things you can try:
- Connect the device with a data-capable USB cable
- Enable **USB debugging** in the developer options
- Accept the RSA fingerprint prompt on the device screen
- Check the connection state with:
~~~
$ magimod devices
~~~

- Build without a device with ` + "`--ignore-adb --no-push`",
		extLinks: []HttpLink{"https://developer.android.com/tools/adb"},
	}

	adbNotFoundIssue = &Issue{
		id: ADBNotFoundId,
		mdMsg: `
# adb not found!

Neither ` + "`adb`" + ` nor ` + "`fastboot`" + ` could be started.

## Things you can try:
- Install the Android SDK platform tools
- Add the platform-tools directory to your PATH
- Point magimod at the binaries in your config file:
~~~cue
adb: {
	binary:          "/opt/platform-tools/adb"
	fastboot_binary: "/opt/platform-tools/fastboot"
}
~~~`,
		extLinks: []HttpLink{"https://developer.android.com/tools/releases/platform-tools"},
	}

	archiveFailedIssue = &Issue{
		id: ArchiveFailedId,
		mdMsg: `
# Could not build the module archive!

The project directory could not be packaged into a zip file.

## Things you can try:
- Check that the project directory exists and is readable
- Check that the parent directory is writable
- Remove special files (sockets, devices, broken links) from the project`,
	}

	remoteCommandFailedIssue = &Issue{
		id: RemoteCommandFailedId,
		mdMsg: `
# A command on the device failed!

The deployment stopped at the step shown above. Steps that already ran on
the device are not undone.

## Things you can try:
- Make sure the device is rooted and ` + "`su`" + ` grants adb shell access
- Check free space on ` + "`/sdcard`" + ` and ` + "`/data`" + `
- Check that ` + "`unzip`" + ` is available on the device
- Use a different su invocation in your config file:
~~~cue
adb: su_command: "su 0 sh -c"
~~~`,
	}

	projectNotFoundIssue = &Issue{
		id: ProjectNotFoundId,
		mdMsg: `
# Module project not found!

The module directory does not exist where it was expected.

## Things you can try:
- Run the command from the directory that contains the project
- Pass the parent directory explicitly:
~~~
$ magimod build my_module ~/modules
~~~

- Create a new project with:
~~~
$ magimod new my_module
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file is invalid or unreadable. Defaults are used.

## Things you can try:
- Check the file for CUE syntax errors
- Print the effective configuration:
~~~
$ magimod config show
~~~

- Regenerate a default file with ` + "`magimod config init --force`",
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	invalidModuleIdIssue = &Issue{
		id: InvalidModuleIdId,
		mdMsg: `
# Invalid module id!

Module ids must start with a letter and contain at least two characters,
using only letters, digits, ` + "`.`" + `, ` + "`_`" + ` and ` + "`-`" + `.

## Examples:
- ` + "`my_module`" + `
- ` + "`com.example.tweaks`" + `
- ` + "`zygisk-demo`",
		extLinks: []HttpLink{"https://topjohnwu.github.io/Magisk/guides.html"},
	}

	issues = map[Id]*Issue{
		noDeviceFoundIssue.Id():       noDeviceFoundIssue,
		adbNotFoundIssue.Id():         adbNotFoundIssue,
		archiveFailedIssue.Id():       archiveFailedIssue,
		remoteCommandFailedIssue.Id(): remoteCommandFailedIssue,
		projectNotFoundIssue.Id():     projectNotFoundIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		invalidModuleIdIssue.Id():     invalidModuleIdIssue,
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the message followed by a "See also" section when the
// issue has links.
func (i *Issue) Markdown() string {
	if len(i.extLinks) == 0 {
		return string(i.mdMsg)
	}
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	sb.WriteString("\n\n## See also:\n")
	for _, link := range i.extLinks {
		sb.WriteString("- <" + string(link) + ">\n")
	}
	return sb.String()
}

// Render renders the issue for the terminal with the given glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
