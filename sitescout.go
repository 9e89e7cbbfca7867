// Package sitescout decides, for a given site, which URLs exist and whether
// a crawler may fetch them. It normalizes URLs, evaluates robots.txt
// policies, reads XML sitemaps, and extracts links from HTML pages.
//
// This package contains domain types, interfaces and dependency-free
// primitives following Ben Johnson's Standard Package Layout.
// Implementations live in subdirectories named after their primary
// dependency (e.g., etree/, goquery/, robotstxt/, http/).
package sitescout
