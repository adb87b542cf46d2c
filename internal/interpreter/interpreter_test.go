package interpreter

import (
	"bytes"
	"errors"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/bfck/internal/dispatch"
	"github.com/retroenv/bfck/internal/lexer"
	"github.com/retroenv/bfck/internal/token"
	"github.com/retroenv/retrogolib/assert"
)

var letterA = strings.Repeat("+", 65)

func run(t *testing.T, source string, input io.Reader) (*Interpreter, *dispatch.Driver, string, error) {
	t.Helper()
	intr := New()
	var buf bytes.Buffer
	driver := dispatch.New(intr, &buf, input)
	err := driver.Run(lexer.TokenizeString(source))
	return intr, driver, buf.String(), err
}

func TestNewInterpreter(t *testing.T) {
	intr := New()
	assert.Len(t, intr.Tape(), DefaultCapacity)
	assert.Equal(t, 16, intr.DataPointer())
	assert.Equal(t, byte(0), intr.Cell())

	intr = NewWithCapacity(8)
	assert.Len(t, intr.Tape(), 8)
	assert.Equal(t, 4, intr.DataPointer())
}

//nolint:funlen // test functions can be long
func TestInterpreterPrograms(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		output      string
		ip          int
		dataPointer int
		tapeLen     int
	}{
		{
			name:        "grow left",
			source:      strings.Repeat("<", 20),
			ip:          1,
			dataPointer: 12,
			tapeLen:     48,
		},
		{
			name:        "grow right",
			source:      strings.Repeat(">", 20),
			ip:          1,
			dataPointer: 36,
			tapeLen:     48,
		},
		{
			name:        "skip loop on zero cell",
			source:      "[<<<<>[>>]]" + letterA + ".",
			output:      "A",
			ip:          8,
			dataPointer: 16,
			tapeLen:     32,
		},
		{
			name:        "nested merged brackets",
			source:      "+[[>" + letterA + ".>]]<.",
			output:      "AA",
			ip:          9,
			dataPointer: 17,
			tapeLen:     32,
		},
		{
			name:        "clear loop",
			source:      "+++++[-]" + letterA + ".",
			output:      "A",
			ip:          6,
			dataPointer: 16,
			tapeLen:     32,
		},
		{
			name:        "move value through merged brackets",
			source:      "++[[->+<]]>.",
			output:      "\x02",
			ip:          9,
			dataPointer: 17,
			tapeLen:     32,
		},
		{
			name:        "multiply then clear",
			source:      "+++[>++<-]>[[-]]" + letterA + ".",
			output:      "A",
			ip:          13,
			dataPointer: 17,
			tapeLen:     32,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intr, driver, output, err := run(t, tt.source, strings.NewReader(""))
			assert.NoError(t, err)
			assert.Equal(t, tt.output, output)
			assert.Equal(t, tt.ip, driver.InstructionPointer())
			assert.Equal(t, tt.dataPointer, intr.DataPointer())
			assert.Len(t, intr.Tape(), tt.tapeLen)
		})
	}
}

func TestInterpreterCellWrap(t *testing.T) {
	intr, _, _, err := run(t, "+++>--->---++++", nil)
	assert.NoError(t, err)

	tape := intr.Tape()
	assert.Equal(t, 18, intr.DataPointer())
	assert.Equal(t, byte(3), tape[16])
	assert.Equal(t, byte(253), tape[17])
	assert.Equal(t, byte(1), tape[18])
	assert.Len(t, tape, 32)

	intr, _, _, err = run(t, strings.Repeat("+", 256), nil)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), intr.Cell())

	intr, _, _, err = run(t, "-", nil)
	assert.NoError(t, err)
	assert.Equal(t, byte(255), intr.Cell())
}

func TestInterpreterMovesKeepCells(t *testing.T) {
	// the cell marked before growing must stay reachable at the same relative offset
	intr, _, output, err := run(t, "+++"+strings.Repeat("<", 40)+strings.Repeat(">", 40)+".", nil)
	assert.NoError(t, err)
	assert.Equal(t, "\x03", output)
	assert.Equal(t, byte(3), intr.Cell())

	intr, _, output, err = run(t, "++"+strings.Repeat(">", 100)+strings.Repeat("<", 100)+".", nil)
	assert.NoError(t, err)
	assert.Equal(t, "\x02", output)
	assert.Equal(t, byte(2), intr.Cell())
}

func TestInterpreterGrowBoundaries(t *testing.T) {
	tests := []struct {
		name        string
		move        string
		back        string
		dataPointer int
		tapeLen     int
	}{
		{name: "right to tape end", move: ">", back: "<", dataPointer: 32, tapeLen: 48},
		{name: "right past end by 16", move: ">", back: "<", dataPointer: 48, tapeLen: 64},
		{name: "right past end by 32", move: ">", back: "<", dataPointer: 64, tapeLen: 80},
		{name: "right past end by 48", move: ">", back: "<", dataPointer: 80, tapeLen: 96},
		{name: "left to tape start", move: "<", back: ">", dataPointer: 0, tapeLen: 32},
		{name: "left past start by 16", move: "<", back: ">", dataPointer: 0, tapeLen: 48},
		{name: "left past start by 32", move: "<", back: ">", dataPointer: 0, tapeLen: 64},
		{name: "left past start by 48", move: "<", back: ">", dataPointer: 0, tapeLen: 80},
	}

	for index, tt := range tests {
		// the moves start at the default data pointer 16 on a 32 cell tape
		count := 16 * (index%4 + 1)

		t.Run(tt.name, func(t *testing.T) {
			intr, _, _, err := run(t, strings.Repeat(tt.move, count)+"+", nil)
			assert.NoError(t, err)
			assert.Equal(t, tt.dataPointer, intr.DataPointer())
			assert.Len(t, intr.Tape(), tt.tapeLen)
			assert.Equal(t, byte(1), intr.Cell())

			intr, _, _, err = run(t, "++"+strings.Repeat(tt.move, count)+"+"+strings.Repeat(tt.back, count), nil)
			assert.NoError(t, err)
			assert.Equal(t, byte(2), intr.Cell())
		})
	}
}

func TestInterpreterRandomMoves(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for range 200 {
		var source strings.Builder
		source.WriteString("+")
		net := 0
		for range 1 + rng.IntN(20) {
			count := 1 + rng.IntN(64)
			if rng.IntN(2) == 0 {
				source.WriteString(strings.Repeat("<", count))
				net -= count
			} else {
				source.WriteString(strings.Repeat(">", count))
				net += count
			}
		}

		intr, _, _, err := run(t, source.String(), nil)
		assert.NoError(t, err)

		tape := intr.Tape()
		assert.True(t, len(tape) >= DefaultCapacity)
		assert.Equal(t, 0, (len(tape)-DefaultCapacity)%16)
		assert.True(t, intr.DataPointer() >= 0 && intr.DataPointer() < len(tape))

		// the origin cell is the only marked cell and stays at the net displacement
		origin := intr.DataPointer() - net
		assert.True(t, origin >= 0 && origin < len(tape))
		assert.Equal(t, byte(1), tape[origin])
		sum := 0
		for _, cell := range tape {
			sum += int(cell)
		}
		assert.Equal(t, 1, sum)
	}
}

func TestInterpreterWrite(t *testing.T) {
	source := letterA + "." + "+." + "+."
	_, _, output, err := run(t, source, nil)
	assert.NoError(t, err)
	assert.Equal(t, "ABC", output)

	_, _, output, err = run(t, letterA+"...", nil)
	assert.NoError(t, err)
	assert.Equal(t, "AAA", output)
}

func TestInterpreterRead(t *testing.T) {
	intr, _, output, err := run(t, ",.>,.", strings.NewReader("hi"))
	assert.NoError(t, err)
	assert.Equal(t, "hi", output)
	assert.Equal(t, byte('i'), intr.Cell())

	// merged reads overwrite the cell, the last byte wins
	intr, _, _, err = run(t, ",,,", strings.NewReader("xyz"))
	assert.NoError(t, err)
	assert.Equal(t, byte('z'), intr.Cell())
}

func TestInterpreterReadEndOfInput(t *testing.T) {
	_, _, _, err := run(t, ",,", strings.NewReader("a"))
	assert.True(t, errors.Is(err, ErrUnexpectedEndOfInput))

	_, _, _, err = run(t, ",", nil)
	assert.True(t, errors.Is(err, ErrUnexpectedEndOfInput))
}

func TestInterpreterUnmatchedBrackets(t *testing.T) {
	_, _, _, err := run(t, "<<[<", nil)
	assert.True(t, errors.Is(err, token.ErrUnmatchedOpenBracket))
	assert.ErrorContains(t, err, "unmatched open bracket at position 1")

	_, _, _, err = run(t, "+]", nil)
	assert.True(t, errors.Is(err, token.ErrUnmatchedCloseBracket))
}

func TestInterpreterSamples(t *testing.T) {
	tests := []struct {
		file   string
		output string
	}{
		{file: "hello_world_inline.bf", output: "Hello World!\n"},
		{file: "hello_world_pretty.bf", output: "Hello World!\n"},
		{file: "add_2_and_5.bf", output: "\x07"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join("..", "..", "samples", tt.file))
			assert.NoError(t, err)

			_, _, output, err := run(t, string(data), nil)
			assert.NoError(t, err)
			assert.Equal(t, tt.output, output)
		})
	}
}

func TestRotateRight(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	rotateRight(data, 2)
	assert.Equal(t, []byte{4, 5, 1, 2, 3}, data)

	rotateRight(data, 5)
	assert.Equal(t, []byte{4, 5, 1, 2, 3}, data)

	rotateRight(nil, 3)
}

func TestDivCeil(t *testing.T) {
	assert.Equal(t, 1, divCeil(1, 16))
	assert.Equal(t, 1, divCeil(16, 16))
	assert.Equal(t, 2, divCeil(17, 16))
}
