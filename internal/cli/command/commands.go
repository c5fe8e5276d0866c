package command

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzip"

	"codearena/internal/common/mq"
	"codearena/internal/judge/model"
)

func newSubmitCommand() *Command {
	return &Command{
		Name:    "submit",
		Summary: "publish a submission for judging",
		Usage:   "submit -problem <id> [-contest <id>] [-user <id>] [-language cpp|c|python] [-tests <file.json>] [-archive <key>] [-points <n>] [-time-limit <ms>] [-memory-limit <mb>] <source-file>",
		Run:     runSubmit,
	}
}

func runSubmit(ctx context.Context, rt *Runtime, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	fs.SetOutput(rt.Out)
	problemID := fs.String("problem", "", "problem ID")
	contestID := fs.String("contest", "", "contest ID")
	userID := fs.String("user", "", "user ID")
	language := fs.String("language", "", "language identifier")
	testsFile := fs.String("tests", "", "JSON file with inline test cases")
	archiveKey := fs.String("archive", "", "object storage key of a test case archive")
	points := fs.Float64("points", 0, "problem points for scoring")
	timeLimitMs := fs.Int("time-limit", 0, "per-test CPU time limit in ms")
	memoryLimitMB := fs.Int("memory-limit", 0, "memory limit in MB")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one source file argument")
	}
	if *problemID == "" {
		return fmt.Errorf("-problem is required")
	}

	code, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read source file failed: %w", err)
	}

	msg := &model.SubmissionMessage{
		SubmissionID:    uuid.NewString(),
		ProblemID:       *problemID,
		ContestID:       *contestID,
		UserID:          *userID,
		Language:        *language,
		Code:            string(code),
		TimeLimitMs:     *timeLimitMs,
		MemoryLimitMB:   *memoryLimitMB,
		ProblemPoints:   *points,
		TestCaseArchive: *archiveKey,
	}
	if *testsFile != "" {
		tests, err := readTestCases(*testsFile)
		if err != nil {
			return err
		}
		msg.TestCases = tests
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	producer, err := rt.Producer()
	if err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode submission failed: %w", err)
	}
	queueMsg := mq.NewMessage(body)
	queueMsg.ID = msg.SubmissionID
	queueMsg.SetHeader("submission-id", msg.SubmissionID)
	if err := producer.Publish(ctx, rt.Config.SubmissionsTopic, queueMsg); err != nil {
		return fmt.Errorf("publish submission failed: %w", err)
	}
	fmt.Fprintf(rt.Out, "submitted %s\n", msg.SubmissionID)
	return nil
}

func readTestCases(path string) ([]model.TestCasePayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test case file failed: %w", err)
	}
	var tests []model.TestCasePayload
	if err := json.Unmarshal(data, &tests); err != nil {
		return nil, fmt.Errorf("parse test case file failed: %w", err)
	}
	return tests, nil
}

func newStatusCommand() *Command {
	return &Command{
		Name:    "status",
		Summary: "show a submission and its per-test results",
		Usage:   "status <submission-id>",
		Run: func(ctx context.Context, rt *Runtime, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one submission ID")
			}
			data, err := rt.API.GetSubmission(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(rt, data)
		},
	}
}

func newLeaderboardCommand() *Command {
	return &Command{
		Name:    "leaderboard",
		Summary: "show the current standings for a contest",
		Usage:   "leaderboard <contest-id>",
		Run: func(ctx context.Context, rt *Runtime, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one contest ID")
			}
			data, err := rt.API.GetLeaderboard(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(rt, data)
		},
	}
}

func newWatchCommand() *Command {
	return &Command{
		Name:    "watch",
		Summary: "stream live leaderboard updates for a contest",
		Usage:   "watch <contest-id>",
		Run:     runWatch,
	}
}

func runWatch(ctx context.Context, rt *Runtime, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one contest ID")
	}
	wsURL, err := rt.API.LeaderboardWSURL(args[0])
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connect to %s failed: %w", wsURL, err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the command is interrupted.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	fmt.Fprintf(rt.Out, "watching %s (interrupt to stop)\n", args[0])
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read update failed: %w", err)
		}
		if err := printJSON(rt, payload); err != nil {
			return err
		}
	}
}

func newUploadTestsCommand() *Command {
	return &Command{
		Name:    "upload-tests",
		Summary: "upload a gzip test case archive to object storage",
		Usage:   "upload-tests -key <object-key> <file.json>",
		Run:     runUploadTests,
	}
}

func runUploadTests(ctx context.Context, rt *Runtime, args []string) error {
	fs := flag.NewFlagSet("upload-tests", flag.ContinueOnError)
	fs.SetOutput(rt.Out)
	key := fs.String("key", "", "object key for the archive")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one test case file argument")
	}
	if *key == "" {
		return fmt.Errorf("-key is required")
	}

	tests, err := readTestCases(fs.Arg(0))
	if err != nil {
		return err
	}
	if len(tests) == 0 {
		return fmt.Errorf("test case file is empty")
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(tests); err != nil {
		return fmt.Errorf("encode archive failed: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compress archive failed: %w", err)
	}

	store, err := rt.Storage()
	if err != nil {
		return err
	}
	bucket := rt.Config.MinIO.Bucket
	if err := store.PutObject(ctx, bucket, *key, &buf, int64(buf.Len()), "application/gzip"); err != nil {
		return fmt.Errorf("upload archive failed: %w", err)
	}
	fmt.Fprintf(rt.Out, "uploaded %d test cases to %s/%s\n", len(tests), bucket, *key)
	return nil
}

func printJSON(rt *Runtime, data []byte) error {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Fprintln(rt.Out, string(data))
		return nil
	}
	fmt.Fprintln(rt.Out, pretty.String())
	return nil
}
