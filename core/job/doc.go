// Package job reads reconciliation job definitions.
//
// A job is a YAML file naming the two sources, how each is melted (dimension and
// name resolution, rules), the comparison policy, the exception table and the
// report output. Definitions are decoded strictly: an unknown key is an error,
// reported before any source is opened.
//
//	name: regions
//	policy: strict-name-match
//	sources:
//	  a:
//	    kind: xlsx
//	    location: s3://exports/reference.xlsx
//	    sheets: [Region]
//	    dimension: {policy: fixed, value: Region}
//	  b:
//	    kind: zip
//	    location: s3://exports/extract.zip
//	    dimension: {policy: unit, strip_suffix: _extract.csv}
//	exceptions:
//	  location: s3://exports/reference.xlsx
//	  sheets: [Exceptions]
//	output:
//	  format: xlsx
//	  upload: s3:///regions/latest.xlsx
package job
