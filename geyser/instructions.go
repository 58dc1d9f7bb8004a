package geyser

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// InnerInstructionSet is the optional list of inner instruction groups a
// transaction produced. nil means the host reported none (absent); a non-nil
// empty slice means present but empty.
type InnerInstructionSet = []InnerInstructions

// InnerInstructions groups the instructions invoked by the top-level
// instruction at Index.
type InnerInstructions struct {
	Index        uint8              `json:"index"`
	Instructions []InnerInstruction `json:"instructions"`
}

type InnerInstruction struct {
	Instruction CompiledInstruction `json:"instruction"`
	StackHeight *uint32             `json:"stack_height"`
}

// CompiledInstruction references accounts and the program by index into the
// transaction's account keys.
type CompiledInstruction struct {
	ProgramIDIndex uint8    `json:"program_id_index"`
	Accounts       ByteList `json:"accounts"`
	Data           ByteList `json:"data"`
}

// ByteList is a byte slice whose JSON form is an array of numbers, the shape
// downstream readers of the cache expect, instead of base64.
type ByteList []byte

func (b ByteList) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, 2+len(b)*4)
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	return append(out, ']'), nil
}

func (b *ByteList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = nil
		return nil
	}
	var nums []uint16
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}
	out := make(ByteList, len(nums))
	for i, n := range nums {
		if n > 0xFF {
			return fmt.Errorf("geyser: byte value %d out of range at %d", n, i)
		}
		out[i] = byte(n)
	}
	*b = out
	return nil
}
