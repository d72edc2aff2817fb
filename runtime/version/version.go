// Package version carries the build metadata stamped into the binary at
// link time and formats it for --version output and startup logs.
package version

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"
)

// Set via linker flags in release builds; local builds fall back to asking
// git directly.
var (
	gitCommit = "Local build"
	buildDate = "Moments ago"
	gitTag    = "Unknown"
)

// GetVersion returns the full version string of this build.
func GetVersion() string {
	if buildDate == "{DATE}" {
		buildDate = time.Now().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s. Built at: %s", GetBuildData(), buildDate)
}

// GetBuildData returns the git tag and commit of the current build.
func GetBuildData() string {
	if gitCommit == "{STABLE_GIT_COMMIT}" {
		commit, err := exec.Command("git", "rev-parse", "HEAD").Output()
		if err != nil {
			log.Println(err)
		} else {
			gitCommit = strings.TrimRight(string(commit), "\r\n")
		}
	}
	return fmt.Sprintf("RelationService/%s/%s", gitTag, gitCommit)
}
