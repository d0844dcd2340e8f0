/* Copyright 2025 Studylog Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package dirs resolves the base directories studylog keeps local data in
package dirs

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// AppDirName is the name of the directory studylog creates under the data home
const AppDirName = "studylog"

const envDataHome = "XDG_DATA_HOME"

var (
	// Home is the home directory of the user
	Home string
	// DataHome is the full path to the directory in which user-specific data
	// files should be written. It follows XDG_DATA_HOME when set.
	DataHome string
)

func init() {
	Reload()
}

// Reload re-reads the environment and recomputes the directory definitions
func Reload() {
	Home = getHomeDir()
	DataHome = readPath(envDataHome, filepath.Join(Home, ".local", "share"))
}

// DataFile returns the path of the given file inside the studylog data directory
func DataFile(name string) string {
	return filepath.Join(DataHome, AppDirName, name)
}

func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(errors.Wrap(err, "getting home dir"))
	}

	return home
}

func readPath(envName, defaultPath string) string {
	if dir := os.Getenv(envName); dir != "" {
		return dir
	}

	return defaultPath
}
