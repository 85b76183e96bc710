// This file is part of ngaro - https://github.com/db47h/ngaro
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package vm implements klang's runtime: a tree of lexical scopes, a flat
// Chunk of instructions produced by package compiler, and an Instance that
// walks the chunk opcode by opcode.
//
// Unlike a register or stack-cell machine, an Instance keeps no single
// operand stack: every scope carries its own value stack, and Load/Store
// walk the scope chain from the current leaf towards the root. Function
// calls splice a copy of the callee's body directly into the chunk right
// after the Call instruction rather than jumping into a shared text
// segment — see Instance.call and Chunk.Splice.
package vm
