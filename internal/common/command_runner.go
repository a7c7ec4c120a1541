package common

import (
	"context"
	"fmt"

	"hirescope/internal/errors"
)

// CreateInputFunc builds the operation input from the files named on the
// command line.
type CreateInputFunc[Input any] func(files []File) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc runs one service operation.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunCommand reads paths, builds the input, runs the operation and writes the
// formatted result.
func RunCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	paths []string,
	createInput CreateInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	if err := fileProcessor.ValidateOutputFile(cmdConfig.OutputFile); err != nil {
		return err
	}

	files, err := fileProcessor.ValidateAndReadFiles(cmdConfig.MaxFileSize, paths...)
	if err != nil {
		return err
	}

	input, err := createInput(files)
	if err != nil {
		return fmt.Errorf("failed to create input: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
