package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type InputUtils struct {
	in  *bufio.Reader
	out io.Writer
}

func NewInputUtils() *InputUtils {
	return NewInputUtilsWith(os.Stdin, os.Stdout)
}

func NewInputUtilsWith(in io.Reader, out io.Writer) *InputUtils {
	return &InputUtils{in: bufio.NewReader(in), out: out}
}

// AskConfirmation asks user for yes/no confirmation
func (i *InputUtils) AskConfirmation(message string, force bool) bool {
	if force {
		return true
	}
	fmt.Fprintf(i.out, "%s (y/N): ", message)
	response, _ := i.in.ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
