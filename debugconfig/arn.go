package debugconfig

import "strings"

const latestQualifier = "$LATEST"

// QualifyFunctionARN returns the $LATEST-qualified form of a structurally
// unqualified lambda function ARN (seven colon-separated segments). An ARN
// that already carries a non-empty qualifier is returned unchanged. Any
// other shape, including an eight-segment ARN with an empty qualifier, is
// passed through unmodified; rejecting malformed ARNs is left to the
// consumers of the configuration.
func QualifyFunctionARN(arn string) string {
	if arn == "" {
		return arn
	}
	parts := strings.Split(arn, ":")
	if len(parts) == 8 && parts[len(parts)-1] != "" {
		return arn
	}
	if len(parts) != 7 {
		return arn
	}
	return arn + ":" + latestQualifier
}
