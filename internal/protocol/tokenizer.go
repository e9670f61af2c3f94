package protocol

import "errors"

// Tokenizer errors. Both surface to the client as an Arg-class ACK with
// an empty tag, since no command name could be extracted.
var (
	ErrMissingCloseQuote = errors.New("missing closing quote")
	ErrSpaceAfterQuote   = errors.New("space expected after closing quote")
)

// SplitLine splits a raw request line into argv tokens.
//
// Tokens are separated by runs of spaces or tabs. A token may be wrapped
// in double quotes to embed whitespace; inside quotes a backslash
// escapes the next character. The closing quote must be followed by
// whitespace or the end of the line.
func SplitLine(line string) ([]string, error) {
	var argv []string

	i := 0
	n := len(line)
	for {
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i == n {
			return argv, nil
		}

		if line[i] == '"' {
			i++
			var token []byte
			for {
				if i == n {
					return nil, ErrMissingCloseQuote
				}
				c := line[i]
				if c == '"' {
					i++
					break
				}
				if c == '\\' {
					i++
					if i == n {
						return nil, ErrMissingCloseQuote
					}
					c = line[i]
				}
				token = append(token, c)
				i++
			}
			if i < n && line[i] != ' ' && line[i] != '\t' {
				return nil, ErrSpaceAfterQuote
			}
			argv = append(argv, string(token))
			continue
		}

		start := i
		for i < n && line[i] != ' ' && line[i] != '\t' {
			i++
		}
		argv = append(argv, line[start:i])
	}
}
