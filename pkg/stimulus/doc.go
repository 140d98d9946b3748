// Package stimulus loads the trials an experiment presents.
//
// Two families of stimuli exist. Forced-choice trials ([Trial]) pair a
// challenge string or tree with a correct and an incorrect alternative and
// carry the alignment that explains the correct answer. They are served
// as a [Feed] keyed by domain name. List-routine concepts ([Concept]) are
// blocks of integer-list input/output examples produced by a hidden rule.
//
// A [Source] reads both from a directory ([DirSource]) or a web server
// ([HTTPSource]) using the same relative layout:
//
//	feed.json
//	dataset/c001_1.json
//	model/c011_1.json
package stimulus
