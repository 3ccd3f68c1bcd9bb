// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

// Package avro implements an Avro schema compiler and a pair of binary
// codecs that operate against compiled schemas. It parses Avro JSON schema
// documents, builds a typed in-memory representation (resolving named-type
// references and recursion), and translates between Avro binary encoding
// and Go values.
package avro

const nullNamespace = ""
