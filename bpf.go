package main

import "golang.org/x/net/bpf"

// replyProgram accepts ARP replies and drops every other frame, so the
// socket queue only holds what the collector can use.
func replyProgram() []bpf.Instruction {
	return []bpf.Instruction{
		bpf.LoadAbsolute{Off: offEtherType, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: uint32(etherTypeARP), SkipTrue: 3},
		bpf.LoadAbsolute{Off: offOp, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: uint32(opReply), SkipTrue: 1},
		bpf.RetConstant{Val: 0xffff},
		bpf.RetConstant{Val: 0},
	}
}

func replyFilter() ([]bpf.RawInstruction, error) {
	return bpf.Assemble(replyProgram())
}
