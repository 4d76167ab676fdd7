package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	md2slides "github.com/alnah/go-md2slides"
	"github.com/alnah/go-md2slides/internal/fileutil"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	Assets   assetInfo  `json:"assets"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// assetInfo holds the state of the style and template a conversion would use.
type assetInfo struct {
	Path     string `json:"path,omitempty"`
	Style    bool   `json:"style"`
	Template bool   `json:"template"`
	KaTeX    string `json:"katex"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// doctorChecks holds the checks used by runDoctor.
type doctorChecks struct {
	getenv     func(string) string
	lookPath   func() (string, bool)
	version    func(path string) (string, error)
	fileExists func(path string) bool
	tempDir    func() string
}

// defaultDoctorChecks inspects the real system.
func defaultDoctorChecks(getenv func(string) string) doctorChecks {
	return doctorChecks{
		getenv:   getenv,
		lookPath: launcher.LookPath,
		version: func(path string) (string, error) {
			out, err := exec.Command(path, "--version").Output() // #nosec G204 -- browser binary path
			return strings.TrimSpace(string(out)), err
		},
		fileExists: fileutil.FileExists,
		tempDir:    os.TempDir,
	}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	jsonOutput := fs.Bool("json", false, "print results as JSON")
	assetPath := fs.String("asset-path", "", "custom asset directory to check")
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	result := runDoctor(defaultDoctorChecks(env.Getenv), *assetPath)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(c doctorChecks, assetPath string) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  c.getenv("ROD_NO_SANDBOX"),
			BrowserBin: c.getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(c, result)
	checkEnvironment(c, result)
	checkAssets(assetPath, result)
	checkSystem(c, result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(c doctorChecks, result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = c.lookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if !c.fileExists(chromePath) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	if v, err := c.version(chromePath); err == nil {
		result.Chrome.Version = v
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(c doctorChecks, result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer(c)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if c.getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// The hint names the signal that matched.
func isContainer(c doctorChecks) (bool, string) {
	if c.getenv("MD2SLIDES_CONTAINER") == "1" {
		return true, "MD2SLIDES_CONTAINER=1"
	}
	if c.fileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := c.getenv("container"); v != "" {
		return true, "container=" + v
	}
	if c.getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkAssets loads the default style and template, from assetPath when set.
func checkAssets(assetPath string, result *doctorResult) {
	result.Assets.Path = assetPath
	result.Assets.KaTeX = md2slides.KaTeXVersion

	loader, err := md2slides.NewAssetLoader(assetPath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Asset path unusable: %v", err))
		return
	}
	if _, err := loader.LoadStyle(md2slides.DefaultStyle); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Style %q: %v", md2slides.DefaultStyle, err))
	} else {
		result.Assets.Style = true
	}
	if _, err := loader.LoadTemplate(md2slides.DefaultTemplate); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Template %q: %v", md2slides.DefaultTemplate, err))
	} else {
		result.Assets.Template = true
	}
}

// checkSystem verifies system requirements.
func checkSystem(c doctorChecks, result *doctorResult) {
	tmpDir := c.tempDir()
	testFile := filepath.Join(tmpDir, "md2slides-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "md2slides doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Assets")
	source := "embedded"
	if r.Assets.Path != "" {
		source = r.Assets.Path
	}
	printCheck(w, r.Assets.Style, "Style: "+source)
	printCheck(w, r.Assets.Template, "Template: "+source)
	fmt.Fprintf(w, "  [OK] KaTeX: %s (loaded from CDN)\n", r.Assets.KaTeX)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func printCheck(w io.Writer, ok bool, label string) {
	if ok {
		fmt.Fprintf(w, "  [OK] %s\n", label)
	} else {
		fmt.Fprintf(w, "  [ERROR] %s\n", label)
	}
}
