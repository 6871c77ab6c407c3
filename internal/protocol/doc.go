// Package protocol implements the wire-level details of Shure receiver
// discovery.
//
// This package holds the constants and pure parsing functions shared by the
// passive multicast listener and the active TCP prober. It has no network
// code of its own; internal/discovery owns sockets and scheduling.
//
// # Discovery Overview
//
// Shure wireless receivers announce themselves two ways:
//   - SLP attribute bursts: multicast UDP datagrams to 239.255.254.253:8427
//     carrying a comma-separated attribute list that embeds the device
//     class ID as a "cd:" token
//   - Command port: a TCP service on port 2202 that answers simple text
//     commands of the form "< GET ... >"
//
// # Attribute Format
//
// An SLP announcement payload looks like:
//
//	(cond-ack=false),(cd:39A47E07C0BE4B89B9FC54F0B1F2CD4F),(dfv=2.7.21)
//
// Segments are comma separated and individually wrapped in parens. The
// class ID is everything after the last "cd:" inside a segment. When more
// than one segment carries a "cd:" token the last one wins.
//
// # Probe Replies
//
// The command port replies in the same angle-bracket report style:
//
//	< REP 1 DEVICE_ID {RACK 1A} >
//	< REP MODEL {ULXD4Q} >
//
// ExtractClassID handles replies that echo a class ID. For receivers that
// never report one, ExtractModelHint pulls a plausible model token from
// any line mentioning MODEL, PRODUCT or DEVICE.
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use.
package protocol
