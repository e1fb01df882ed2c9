package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const tinyDataset = `text,intent
open youtube,youtube_open
launch youtube,youtube_open
start youtube,youtube_open
youtube homepage,youtube_open
go to youtube,youtube_open
open camera,app_open
launch camera,app_open
start camera,app_open
camera app,app_open
show camera,app_open
what time is it,utility_time
tell me the time,utility_time
current time,utility_time
time check,utility_time
clock time,utility_time
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Error("version printed nothing")
	}
}

func TestTrainThenClassify(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "intents.csv")
	model := filepath.Join(dir, "model.json")
	if err := os.WriteFile(data, []byte(tinyDataset), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "train", "--data", data, "--out", model)
	if err != nil {
		t.Fatalf("train: %v\n%s", err, out)
	}
	if !strings.Contains(out, "validation accuracy") || !strings.Contains(out, "model written to") {
		t.Errorf("unexpected train output:\n%s", out)
	}
	if _, err := os.Stat(model); err != nil {
		t.Fatalf("model not written: %v", err)
	}

	out, err = execute(t, "classify", "--model", model, "--json", "camera", "please")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	var got classifyOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if !got.Resolved || got.Source != "classifier" || got.Intent != "app_open" || got.Handler != "app.camera" {
		t.Errorf("unexpected classification %+v", got)
	}
}

func TestTrain_MissingDataset(t *testing.T) {
	if _, err := execute(t, "train", "--data", filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func TestClassify_StaticRulesWithoutModel(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.json")

	out, err := execute(t, "classify", "--model", missing, "delete", "file")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	for _, want := range []string{"intent:  file_delete (rules)", "handler: file.delete", "missing: file"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "classify", "--model", missing, "lovely", "weather")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !strings.HasPrefix(out, "unresolved:") {
		t.Errorf("unexpected output %q", out)
	}
}
