package exec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/viant/devchat/model/plan"
	"github.com/viant/devchat/policy"
	"github.com/viant/devchat/service/action/system/storage"
	"github.com/viant/devchat/service/content"
	"github.com/viant/devchat/service/guard"
	"github.com/viant/devchat/service/sandbox"
	"github.com/viant/devchat/tracing"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
)

// Service dispatches model-proposed commands. Every command is classified
// first; content-writing commands and literal redirections are turned into
// confined file writes, everything else permitted runs through the shell,
// either one process per command or a persistent session.
type Service struct {
	checker    *sandbox.Checker
	classifier *guard.Classifier
	storage    *storage.Service

	mux         sync.Mutex
	session     *gosh.Service
	sessionRoot string
}

// New creates an execution service confined by the supplied checker.
func New(checker *sandbox.Checker) *Service {
	return &Service{
		checker:    checker,
		classifier: guard.New(checker),
		storage:    storage.New(checker),
	}
}

// Execute runs all input commands sequentially. A rejected or failed command
// never aborts the batch; its result carries the outcome and the next command
// still runs.
func (s *Service) Execute(ctx context.Context, input *Input, output *Output) error {
	input.Init()
	for _, cmd := range input.Commands {
		output.Results = append(output.Results, s.dispatch(ctx, cmd, input))
	}
	output.Finalize()
	return nil
}

func (s *Service) dispatch(ctx context.Context, cmd plan.Command, input *Input) (result plan.ExecutionResult) {
	ctx, span := tracing.StartSpan(ctx, "exec.command", "INTERNAL")
	span.WithAttributes(map[string]string{"command": cmd.Command})
	defer func() {
		span.WithAttributes(map[string]string{"safe": fmt.Sprintf("%v", result.IsSafe)})
		tracing.EndSpan(span, nil)
	}()

	verdict := s.classifier.Classify(cmd.Command)
	if verdict.Kind == guard.KindRejected {
		return plan.NewRejected(cmd)
	}
	if !policy.FromContext(ctx).Approves(ctx, verdict.Verb, cmd.Command) {
		return plan.NewRejected(cmd)
	}

	switch verdict.Kind {
	case guard.KindContentFlag:
		return s.runContent(ctx, cmd)
	case guard.KindRedirection:
		if redirection, ok := content.ParseRedirection(cmd.Command); ok {
			return s.writeFile(ctx, cmd, redirection.Path, redirection.Content, redirection.Append)
		}
		return s.runShell(ctx, cmd, input)
	default:
		return s.runShell(ctx, cmd, input)
	}
}

// runContent executes a Set-Content/Add-Content/New-Item command by writing
// its literal value through the confined storage service instead of shelling
// out.
func (s *Service) runContent(ctx context.Context, cmd plan.Command) plan.ExecutionResult {
	parsed, err := content.Parse(cmd.Command)
	if err != nil {
		return plan.NewExecuted(cmd, "", err.Error())
	}
	return s.writeFile(ctx, cmd, parsed.Path, parsed.Content(), parsed.Append())
}

func (s *Service) writeFile(ctx context.Context, cmd plan.Command, path, data string, append bool) plan.ExecutionResult {
	output := &storage.WriteOutput{}
	_ = s.storage.Write(ctx, &storage.WriteInput{Path: path, Content: data, Append: append}, output)
	if !output.Success {
		return plan.NewExecuted(cmd, "", output.Error)
	}
	result := plan.NewExecuted(cmd, fmt.Sprintf("wrote %v bytes to %v", output.BytesWritten, output.Path), "")
	result.Preview = output.Preview
	return result
}

func (s *Service) runShell(ctx context.Context, cmd plan.Command, input *Input) plan.ExecutionResult {
	if input.UseSession {
		return s.runInSession(ctx, cmd, input)
	}
	return s.spawn(ctx, cmd, input)
}

// spawn runs the command in a fresh shell process rooted at the project
// directory.
func (s *Service) spawn(ctx context.Context, cmd plan.Command, input *Input) plan.ExecutionResult {
	timeout := time.Duration(input.TimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shell, args := shellCommand(cmd.Command)
	process := exec.CommandContext(ctx, shell, args...)
	process.Dir = s.checker.Root()
	if len(input.Env) > 0 {
		process.Env = os.Environ()
		for k, v := range input.Env {
			process.Env = append(process.Env, fmt.Sprintf("%v=%v", k, v))
		}
	}
	var stdout, stderr bytes.Buffer
	process.Stdout = &stdout
	process.Stderr = &stderr

	err := process.Run()
	errText := stderr.String()
	if err != nil && errText == "" {
		errText = err.Error()
	}
	return plan.NewExecuted(cmd, strings.TrimSpace(stdout.String()), strings.TrimSpace(errText))
}

// runInSession runs the command in the persistent shell session, creating it
// on first use. The session is torn down and recreated whenever the project
// directory changed since it was opened.
func (s *Service) runInSession(ctx context.Context, cmd plan.Command, input *Input) plan.ExecutionResult {
	session, err := s.getSession(ctx, input.Env)
	if err != nil {
		return plan.NewExecuted(cmd, "", fmt.Sprintf("failed to open session: %v", err))
	}
	stdout, status, err := session.Run(ctx, cmd.Command, runner.WithTimeout(input.TimeoutMs))
	if status == 0 && err == nil {
		return plan.NewExecuted(cmd, strings.TrimSpace(stdout), "")
	}
	if stdout == "" && err != nil {
		stdout = err.Error()
	}
	return plan.NewExecuted(cmd, "", strings.TrimSpace(stdout))
}

func (s *Service) getSession(ctx context.Context, env map[string]string) (*gosh.Service, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	root := s.checker.Root()
	if s.session != nil && s.sessionRoot == root {
		return s.session, nil
	}
	if s.session != nil {
		_ = s.session.Close()
		s.session = nil
	}
	var envOptions []runner.Option
	if len(env) > 0 {
		envOptions = append(envOptions, runner.WithEnvironment(env))
	}
	session, err := gosh.New(ctx, local.New(envOptions...))
	if err != nil {
		return nil, err
	}
	if root != "" {
		if _, _, err = session.Run(ctx, fmt.Sprintf("cd %s", root)); err != nil {
			_ = session.Close()
			return nil, fmt.Errorf("failed to change directory: %w", err)
		}
	}
	s.session = session
	s.sessionRoot = root
	return session, nil
}

// InvalidateSession closes the persistent session so the next command opens a
// fresh one. Called when the project directory changes.
func (s *Service) InvalidateSession() {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.session != nil {
		_ = s.session.Close()
		s.session = nil
		s.sessionRoot = ""
	}
}

// Close releases the persistent session if one is open.
func (s *Service) Close(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	var err error
	if s.session != nil {
		err = s.session.Close()
		s.session = nil
		s.sessionRoot = ""
	}
	return err
}

func shellCommand(command string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", command}
	}
	return "/bin/sh", []string{"-c", command}
}
