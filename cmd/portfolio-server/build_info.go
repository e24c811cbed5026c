package main

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed build_info/commit.txt build_info/date.txt build_info/version.txt
var versionFS embed.FS

// buildInfoStruct is stamped into build_info/*.txt by the release build.
type buildInfoStruct struct {
	commit  string
	date    string
	version string
}

func (b buildInfoStruct) String() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuild Date: %s", b.version, b.commit, b.date)
}

var buildInfo = loadBuildInfo(versionFS)

func loadBuildInfo(fs embed.FS) buildInfoStruct {
	readFile := func(path, fallback string) string {
		content, err := fs.ReadFile(path)
		if err != nil {
			return fallback
		}
		if value := strings.TrimSpace(string(content)); value != "" {
			return value
		}
		return fallback
	}

	return buildInfoStruct{
		commit:  readFile("build_info/commit.txt", "unknown commit"),
		date:    readFile("build_info/date.txt", "unknown date"),
		version: readFile("build_info/version.txt", "unknown version"),
	}
}
