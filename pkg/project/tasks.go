package project

import (
	"os"
	"sort"
	"strings"

	"github.com/pseudomuto/projectx/pkg/scanner"
)

// TaskBaseClass is the class every task runner class extends.
const TaskBaseClass = `Robo\Tasks`

// Task is a single task runner command.
type Task struct {
	// Name is the command name, e.g. env:up for envUp
	Name string

	// Method is the PHP method implementing the command
	Method string

	// Class is the fully-qualified class declaring the method
	Class string
}

// Tasks discovers task runner commands declared by RoboFile.php and the
// classes under the tasks directory.
func (p *Project) Tasks() ([]Task, error) {
	classes := make(map[string]*scanner.ClassInfo)

	root := scanner.New().
		SetSearchPattern(TaskFile).
		SetSearchDepth(0).
		MatchExtend(TaskBaseClass)
	if err := root.AddSearchLocation(p.root); err != nil {
		return nil, err
	}

	if err := discoverInto(root, classes); err != nil {
		return nil, err
	}

	if _, err := os.Stat(p.Path(TaskDir)); err == nil {
		dir := scanner.New().MatchExtend(TaskBaseClass)
		if err := dir.AddSearchLocation(p.Path(TaskDir)); err != nil {
			return nil, err
		}

		if err := discoverInto(dir, classes); err != nil {
			return nil, err
		}
	}

	var tasks []Task
	for _, info := range classes {
		for _, method := range info.Methods {
			if strings.HasPrefix(method, "_") {
				continue
			}

			tasks = append(tasks, Task{Name: commandName(method), Method: method, Class: info.Class})
		}
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	return tasks, nil
}

func discoverInto(q *scanner.Query, out map[string]*scanner.ClassInfo) error {
	found, err := q.DiscoverInfo()
	if err != nil {
		return err
	}

	for path, info := range found {
		out[path] = info
	}

	return nil
}

// commandName converts a camelCase method name into a command name the way
// the task runner does: the first hump becomes a colon, later ones dashes
// (siteInstallFresh → site:install-fresh).
func commandName(method string) string {
	var b strings.Builder
	sep := byte(':')
	for i, r := range method {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte(sep)
				sep = '-'
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}

	return b.String()
}
