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

package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// choices returns the answer hint, with the default capitalized
func choices(defaultYes bool) string {
	if defaultYes {
		return "(Y/n)"
	}

	return "(y/N)"
}

// parseAnswer interprets a yes/no answer. An empty answer takes the default
// and anything unrecognized counts as no.
func parseAnswer(input string, defaultYes bool) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return defaultYes
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Confirm writes the question to w and reads a yes/no answer from r
func Confirm(r io.Reader, w io.Writer, question string, defaultYes bool) (bool, error) {
	fmt.Fprintf(w, "%s %s ", question, choices(defaultYes))

	input, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return false, errors.Wrap(err, "reading answer")
	}

	return parseAnswer(input, defaultYes), nil
}
