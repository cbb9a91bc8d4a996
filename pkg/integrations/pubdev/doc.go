// Package pubdev provides an HTTP client for the pub.dev package API.
//
// Hosted dependencies in pubspec.yaml are looked up at
// https://pub.dev/api/packages/<name>; the latest pubspec's repository,
// homepage, issue_tracker and documentation fields are the candidate links.
package pubdev
