/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/stefanprodan/ovsync/pkg/objectutil"
)

// readDocuments loads the documents from the given files and directories,
// a single '-' reads from stdin.
func readDocuments(paths []string, stdin io.Reader) ([]*objectutil.Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("-f is required")
	}

	if len(paths) == 1 && paths[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		return objectutil.ReadDocuments(bytes.NewReader(data))
	}

	files, err := scan(paths)
	if err != nil {
		return nil, err
	}

	var docs []*objectutil.Document
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		d, err := objectutil.ReadDocuments(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s failed, error: %w", file, err)
		}
		docs = append(docs, d...)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in %v", paths)
	}
	return docs, nil
}

func scan(paths []string) ([]string, error) {
	var files []string
	for _, in := range paths {
		fi, err := os.Stat(in)
		if err != nil {
			return nil, err
		}

		switch mode := fi.Mode(); {
		case mode.IsDir():
			m, err := scanRec(in)
			if err != nil {
				return nil, err
			}
			files = append(files, m...)
		case mode.IsRegular():
			files = append(files, in)
		}
	}
	return files, nil
}

func scanRec(dir string) ([]string, error) {
	var files []string
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			m, err := scanRec(path.Join(dir, entry.Name()))
			if err != nil {
				return nil, err
			}
			files = append(files, m...)
			continue
		}
		if matchExt(entry.Name()) {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func matchExt(f string) bool {
	ext := path.Ext(f)
	return ext == ".yaml" || ext == ".yml" || ext == ".json"
}
