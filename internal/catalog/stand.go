package catalog

// StandState is the map's view of one physical stand and the circles
// attending it on each day.
type StandState struct {
	Code                  string     `json:"code"`
	DisplayName           string     `json:"displayName"`
	StandType             StandType  `json:"standType"`
	CircleAttendanceUUIDs Attendance `json:"circleAttendanceUUIDs"`
}

// BuildStands inverts circle attendance into stands, ordered by first
// appearance: circles in order, day one before day two.
func BuildStands(circles []CircleState) ([]StandState, error) {
	var stands []StandState
	index := make(map[string]int)

	for _, c := range circles {
		for day, codes := range c.StandAttendanceCodes.Days() {
			for _, code := range codes {
				i, ok := index[code]
				if !ok {
					sc, err := ParseStandCode(code)
					if err != nil {
						return nil, err
					}
					i = len(stands)
					index[code] = i
					stands = append(stands, StandState{
						Code:        sc.String(),
						DisplayName: sc.DisplayName(),
						StandType:   sc.Type(),
					})
				}
				stands[i].CircleAttendanceUUIDs.add(day, c.UUID)
			}
		}
	}

	return stands, nil
}
